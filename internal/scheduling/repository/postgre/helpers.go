package postgre

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func newUUID() string {
	return uuid.NewString()
}

func joinDays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func splitDays(s string) []int {
	var days []int
	for _, p := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil && d >= 1 && d <= 7 {
			days = append(days, d)
		}
	}
	return days
}
