package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDestPathDefaultsToTargetDirNextToInput(t *testing.T) {
	got := destPath("src/pkg/point.mamba", "src", "")
	assert.Equal(t, "target/pkg/point.py", got)
}

func TestDestPathUsesOutputDirectory(t *testing.T) {
	got := destPath("src/point.mamba", "src", "/tmp")
	assert.Equal(t, "/tmp/point.py", got)
}
