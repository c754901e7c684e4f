package main

import "github.com/supplylens/backend/cmd"

func main() {
	cmd.Execute()
}
