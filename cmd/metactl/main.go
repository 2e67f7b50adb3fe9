package main

import "github.com/okian/metaboard/internal/cli"

func main() {
	cli.Execute()
}
