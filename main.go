package main

import "situs/internal/cli"

func main() {
	cli.Execute()
}
