// Package textutil turns page titles into names that are safe to use on disk.
package textutil
