package main

import "gitsummary/cmd"

func main() {
	cmd.Execute()
}
