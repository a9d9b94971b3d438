package main

import "github.com/ckosmato/Real-Time-Forum/cmd/forum/cmd"

func main() {
	cmd.Execute()
}
