package main

import "github.com/Tiliavir/lumina/cmd"

func main() {
	cmd.Execute()
}
