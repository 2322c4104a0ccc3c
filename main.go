package main

import "nathanbeddoewebdev/revdash/cmd"

func main() {
	cmd.Execute()
}
