package main

import "github.com/andrescamacho/empire-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
