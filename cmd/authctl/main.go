package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/authctl"
)

func main() {
	if err := authctl.NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}
