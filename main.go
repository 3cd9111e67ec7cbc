package main

import "github.com/bridgeport/bridgeport-go/cmd"

func main() {
	cmd.Execute()
}
