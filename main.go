package main

import (
	cmd "github.com/redhat-openshift-ecosystem/markdown-test-report/cmd/mdtr"
)

func main() {
	cmd.Execute()
}
