package main

import "github.com/vinhtrinh326/cpusched/internal/cli"

func main() {
	cli.Execute()
}
