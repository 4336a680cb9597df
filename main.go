package main

import "github.com/marqview/deckstream/cmd"

func main() {
	cmd.Execute()
}
