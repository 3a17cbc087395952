package main

import "github.com/RyanBlaney/sonido-pulse/cmd"

func main() {
	cmd.Execute()
}
