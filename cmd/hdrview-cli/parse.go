package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
)

// parseFloats splits s on sep and parses exactly n numbers.
func parseFloats(s, sep string, n int) ([]float32, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values separated by %q, got %q", n, sep, s)
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseSize reads "WIDTHxHEIGHT".
func parseSize(s string) (fyne.Size, error) {
	v, err := parseFloats(strings.ToLower(s), "x", 2)
	if err != nil {
		return fyne.Size{}, err
	}
	if v[0] <= 0 || v[1] <= 0 {
		return fyne.Size{}, fmt.Errorf("size %q must be positive", s)
	}
	return fyne.NewSize(v[0], v[1]), nil
}

// parsePos reads "X,Y".
func parsePos(s string) (fyne.Position, error) {
	v, err := parseFloats(s, ",", 2)
	if err != nil {
		return fyne.Position{}, err
	}
	return fyne.NewPos(v[0], v[1]), nil
}

// parseRect reads "X0,Y0,X1,Y1" as a half-open pixel rectangle.
func parseRect(s string) (image.Rectangle, error) {
	if s == "" {
		return image.Rectangle{}, nil
	}
	v, err := parseFloats(s, ",", 4)
	if err != nil {
		return image.Rectangle{}, err
	}
	r := image.Rect(int(v[0]), int(v[1]), int(v[2]), int(v[3]))
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("crop rectangle %q is empty", s)
	}
	return r, nil
}

// parseEdit reads "name" or "name:amount", e.g. "gain:-1.5".
func parseEdit(s string) (string, float32, error) {
	name, amount, found := strings.Cut(s, ":")
	if !found {
		return name, 0, nil
	}
	v, err := strconv.ParseFloat(amount, 32)
	if err != nil {
		return "", 0, fmt.Errorf("invalid amount in %q: %w", s, err)
	}
	return name, float32(v), nil
}
