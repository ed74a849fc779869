package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/fitbeard/vault-kube-token/internal/cli"
)

func main() {
	defer klog.Flush()
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
