package main

import "gtm-sync/cmd"

func main() {
	cmd.Execute()
}
