package dropdown

import "strings"

// Line is a rendered item split into parts decorators may adorn.
type Line struct {
	Prefix string
	Title  string
	Suffix string
}

func (l Line) String() string {
	var b strings.Builder
	if l.Prefix != "" {
		b.WriteString(l.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(l.Title)
	if l.Suffix != "" {
		b.WriteByte(' ')
		b.WriteString(l.Suffix)
	}
	return b.String()
}

// Decorator adorns the rendering of an item.
type Decorator interface {
	Decorate(it Item, l Line) Line
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(it Item, l Line) Line

// Decorate implements Decorator.
func (f DecoratorFunc) Decorate(it Item, l Line) Line {
	return f(it, l)
}

// AvatarDecorator marks items with an avatar marker, or a placeholder when
// the item has none.
type AvatarDecorator struct{}

const (
	avatarMark        = "◉"
	avatarPlaceholder = "○"
)

// Decorate implements Decorator.
func (AvatarDecorator) Decorate(it Item, l Line) Line {
	mark := avatarPlaceholder
	if it.Avatar != "" {
		mark = avatarMark
	}
	l.Prefix = strings.TrimSpace(mark + " " + l.Prefix)
	return l
}

// PageDecorator appends the item's page handle as @page.
type PageDecorator struct{}

// Decorate implements Decorator.
func (PageDecorator) Decorate(it Item, l Line) Line {
	if it.Page == "" {
		return l
	}
	l.Suffix = strings.TrimSpace(l.Suffix + " @" + it.Page)
	return l
}
