package main

import "lulu/cmd"

func main() {
	cmd.Execute()
}
