package main

import "github.com/josephlewis42/picosh/cmd"

func main() {
	cmd.Execute()
}
