package main

import "github.com/katamari-chat/katamari/cmd"

func main() {
	cmd.Execute()
}
