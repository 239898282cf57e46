package main

import (
	"fmt"
	"os"

	"spantable/internal/entrypoint"
)

func main() {
	code, err := entrypoint.Execute(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if err != nil || code != 0 {
		os.Exit(code)
	}
}
