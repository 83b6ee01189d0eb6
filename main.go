package main

import "github.com/inisipanji/sawebagi/cmd"

func main() {
	cmd.Execute()
}
