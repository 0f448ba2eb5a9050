package main

import "github.com/iamwhitegod/arena/internal/cli"

func main() {
	cli.Main()
}
