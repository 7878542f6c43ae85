package main

import "github.com/harborlabs/vis/cmd"

func main() {
	cmd.Execute()
}
