package main

import "github.com/CheerlessCloud/veendor/internal/cli"

func main() {
	cli.Execute()
}
