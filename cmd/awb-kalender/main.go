package main

import "github.com/klabast/wb-services/awb-kalender/internal/commands"

func main() {
	commands.Execute()
}
