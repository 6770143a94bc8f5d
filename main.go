package main

import "github.com/brogergvhs/yymh/cmd"

func main() {
	cmd.Execute()
}
