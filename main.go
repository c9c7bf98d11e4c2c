package main

import "equipment-inventory/cmd"

func main() {
	cmd.Execute()
}
