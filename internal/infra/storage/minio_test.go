package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	u, _ := url.Parse("https://s3.example.com:9000")
	assert.Equal(t, "https://s3.example.com:9000/labels/2025/03/01/a.jpg",
		objectURL(u, "labels", "2025/03/01/a.jpg"))
}
