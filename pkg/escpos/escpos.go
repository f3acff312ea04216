// Package escpos arma la secuencia de bytes ESC/POS para impresoras térmicas
// de cupom (80 mm = 48 columnas, 58 mm = 32 columnas).
//
// El Builder mantiene en paralelo una vista previa en texto plano con el mismo
// layout que sale en el papel, sin los bytes de control.
package escpos

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Bytes de control.
const (
	ESC byte = 0x1b
	GS  byte = 0x1d
	LF  byte = 0x0a
)

// CodePage850 número de tabla para ESC t (Epson, Elgin, Bematech en modo ESC/POS).
const CodePage850 byte = 2

// Columnas soportadas.
const (
	Columns80mm = 48
	Columns58mm = 32
)

// Alignment justificación para ESC a.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

const cutFeedLines = 3

// Builder acumula comandos ESC/POS. Los métodos se encadenan.
type Builder struct {
	buf     bytes.Buffer
	preview strings.Builder
	width   int
	align   Alignment
}

// New crea un builder para el ancho de papel dado en columnas.
func New(width int) *Builder {
	if width <= 0 {
		width = Columns80mm
	}
	return &Builder{width: width}
}

// Width ancho en columnas.
func (b *Builder) Width() int { return b.width }

// Init reinicia la impresora (ESC @) y selecciona la página de códigos 850 (ESC t 2).
func (b *Builder) Init() *Builder {
	b.buf.Write([]byte{ESC, '@', ESC, 't', CodePage850})
	b.align = AlignLeft
	return b
}

// Align ESC a n.
func (b *Builder) Align(a Alignment) *Builder {
	b.buf.Write([]byte{ESC, 'a', byte(a)})
	b.align = a
	return b
}

// Bold ESC E n.
func (b *Builder) Bold(on bool) *Builder {
	b.buf.Write([]byte{ESC, 'E', boolByte(on)})
	return b
}

// DoubleSize GS ! n: doble alto y doble ancho.
func (b *Builder) DoubleSize(on bool) *Builder {
	var n byte
	if on {
		n = 0x11
	}
	b.buf.Write([]byte{GS, '!', n})
	return b
}

// Line escribe el texto y un salto de línea. Textos más largos que el ancho
// se parten en varias líneas para que la vista previa coincida con el papel.
func (b *Builder) Line(s string) *Builder {
	for _, chunk := range Wrap(sanitize(s), b.width) {
		b.buf.Write(Encode(chunk))
		b.buf.WriteByte(LF)
		b.preview.WriteString(b.aligned(chunk))
		b.preview.WriteByte('\n')
	}
	return b
}

// Columns escribe una línea con texto a la izquierda y a la derecha.
func (b *Builder) Columns(left, right string) *Builder {
	return b.Line(Columns(left, right, b.width))
}

// Separator línea completa con el carácter dado.
func (b *Builder) Separator(ch rune) *Builder {
	return b.Line(strings.Repeat(string(ch), b.width))
}

// Feed ESC d n: avanza n líneas.
func (b *Builder) Feed(n int) *Builder {
	if n <= 0 {
		return b
	}
	if n > 255 {
		n = 255
	}
	b.buf.Write([]byte{ESC, 'd', byte(n)})
	b.preview.WriteString(strings.Repeat("\n", n))
	return b
}

// Cut GS V 66 n: avanza y hace corte parcial.
func (b *Builder) Cut() *Builder {
	b.buf.Write([]byte{GS, 'V', 66, cutFeedLines})
	return b
}

// Pulse ESC p 0 25 250: pulso en el pin 2 para abrir la gaveta.
func (b *Builder) Pulse() *Builder {
	b.buf.Write([]byte{ESC, 'p', 0, 25, 250})
	return b
}

// Bytes secuencia acumulada.
func (b *Builder) Bytes() []byte {
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Preview texto plano con el mismo layout.
func (b *Builder) Preview() string {
	return b.preview.String()
}

func (b *Builder) aligned(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= b.width {
		return s
	}
	switch b.align {
	case AlignCenter:
		return strings.Repeat(" ", (b.width-n)/2) + s
	case AlignRight:
		return strings.Repeat(" ", b.width-n) + s
	}
	return s
}

// Encode convierte el texto a CP850. Runas sin representación salen como '?'.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if c, ok := charmap.CodePage850.EncodeRune(r); ok {
			out = append(out, c)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// Columns arma una línea de ancho width con left a la izquierda y right a la derecha.
// Si no caben, se trunca left.
func Columns(left, right string, width int) string {
	left, right = sanitize(left), sanitize(right)
	rn := utf8.RuneCountInString(right)
	if rn >= width {
		return truncate(right, width)
	}
	room := width - rn - 1
	left = truncate(left, room)
	pad := width - utf8.RuneCountInString(left) - rn
	return left + strings.Repeat(" ", pad) + right
}

// Wrap parte s en trozos de a lo sumo width runas. Un texto vacío produce una línea vacía.
func Wrap(s string, width int) []string {
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}
	var out []string
	for len(runes) > width {
		cut := width
		// preferir cortar en un espacio
		for i := width; i > width/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(runes[:cut]), " "))
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

func boolByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}
