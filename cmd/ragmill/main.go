// cmd/ragmill/main.go
package main

import (
	cmd "github.com/mwiater/ragmill/internal/cli"
)

// main starts the ragmill CLI application by delegating to the
// cobra root command defined in the ragmill package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
