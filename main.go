package main

import "linkup/cmd"

func main() {
	cmd.Execute()
}
