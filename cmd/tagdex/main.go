package main

import "github.com/kailas-cloud/tagdex/internal/cli"

func main() {
	cli.Execute()
}
