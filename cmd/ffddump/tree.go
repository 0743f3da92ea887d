package main

import (
	"fmt"
	"io"

	"github.com/corwinn/libwind-ffd/internal/decode"
)

// FormatInstance renders a decoded instance tree for the decode
// subcommand's output, in the same indented tree-connector style as the
// teacher CLI's plan tree (├─ / └─ prefixes, one line per node).
func FormatInstance(w io.Writer, root *decode.Node, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s\n", Colorize(root.Name, ColorBlue, useColor))
	renderChildren(w, root, "", useColor)
}

func renderChildren(w io.Writer, n *decode.Node, indent string, useColor bool) {
	for i, c := range n.Children {
		isLast := i == len(n.Children)-1
		connector := "├─ "
		childIndent := indent + "│  "
		if isLast {
			connector = "└─ "
			childIndent = indent + "   "
		}
		_, _ = fmt.Fprintf(w, "%s%s%s\n", indent, connector, describeNode(c, useColor))
		if len(c.Children) > 0 {
			renderChildren(w, c, childIndent, useColor)
		}
	}
}

func describeNode(n *decode.Node, useColor bool) string {
	name := Colorize(n.Name, ColorCyan, useColor)
	if len(n.Children) > 0 {
		return fmt.Sprintf("%s (%d children)", name, len(n.Children))
	}
	if n.IsArray {
		return fmt.Sprintf("%s[%d bytes]", name, len(n.Buf))
	}
	val := describeLeafValue(n)
	if ref, ok := n.HashTarget(); ok {
		return fmt.Sprintf("%s = %s %s", name, val, Colorize(fmt.Sprintf("-> %s", ref.Name), ColorGray, useColor))
	}
	return fmt.Sprintf("%s = %s", name, val)
}

func describeLeafValue(n *decode.Node) string {
	if en, ok := n.EnumName(); ok {
		return fmt.Sprintf("%s (%d)", en, n.AsInt())
	}
	if isPrintable(n.Buf) {
		return fmt.Sprintf("%q", n.AsString())
	}
	return fmt.Sprintf("%d [% x]", n.AsInt(), n.Buf)
}

func isPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
