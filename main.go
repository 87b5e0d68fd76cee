package main

import "movelite-client/cmd"

func main() {
	cmd.Run()
}
