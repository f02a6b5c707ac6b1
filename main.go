package main

import "github.com/KaramelBytes/healthaudit/cmd"

func main() {
	cmd.Execute()
}
