package main

import "harvest/cmd/cmd"

func main() {
	cmd.Execute()
}
