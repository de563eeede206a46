package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// resultError turns a failed vk.Result into an error naming the operation.
func resultError(op string, result vk.Result) error {
	return fmt.Errorf("vulkan: %s failed: %w", op, vk.Error(result))
}

var end = "\x00"
var endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	for i := range list {
		list[i] = VulkanSafeString(list[i])
	}
	return list
}

// FindFirstZeroInByteArray returns the length of a NUL terminated string
// stored in a fixed size array.
func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == endChar {
			return i
		}
	}
	return len(arr)
}
