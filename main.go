// main is the entry point for the cgmprep CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/cgmprep/cmd"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("failed to stop profiling", stopErr)
	}
	cmd.SyncLogger()
	iocache.CloseStores()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
