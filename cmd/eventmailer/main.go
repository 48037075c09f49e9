package main

import "github.com/vietddude/eventmailer/internal/cli"

func main() {
	cli.Execute()
}
