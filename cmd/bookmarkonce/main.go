package main

import "github.com/MrSnakeDoc/bookmarkonce/internal/cli"

func main() {
	cli.Execute()
}
