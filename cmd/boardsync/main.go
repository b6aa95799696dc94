package main

import "boardsync/internal/cli"

func main() {
	cli.Execute()
}
