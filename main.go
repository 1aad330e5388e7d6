package main

import "github.com/allbin/ciscoreset/cmd"

func main() {
	cmd.Execute()
}
