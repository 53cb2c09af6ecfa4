package main

import "github.com/ValentinKolb/kvsub/cmd"

func main() {
	cmd.Execute()
}
