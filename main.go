package main

import "prdiff/internal/cli"

func main() {
	cli.Execute()
}
