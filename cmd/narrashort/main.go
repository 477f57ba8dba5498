package main

import "github.com/forPelevin/narrashort/internal/cli"

func main() { cli.Main() }
