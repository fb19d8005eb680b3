package main

import "github.com/mj1618/uisync/cmd"

func main() {
	cmd.Execute()
}
