package main

import "yangstage/internal/cli"

func main() {
	cli.Execute()
}
