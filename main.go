package main

import "github.com/mveld/parget/cmd"

func main() {
	cmd.Execute()
}
