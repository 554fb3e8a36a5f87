package main

import "github.com/Scotlight/SaveLiveCaptions/cmd"

func main() {
	cmd.Execute()
}
