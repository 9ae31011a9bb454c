package main

import "github.com/upforaride/server/internal/cli"

func main() {
	cli.Execute()
}
