package screen

import (
	"time"

	"ipm-quickstart/config"
)

// Animator runs layout changes over a duration.
type Animator interface {
	Animate(d time.Duration, changes func())
}

type AnimatorFunc func(d time.Duration, changes func())

func (f AnimatorFunc) Animate(d time.Duration, changes func()) {
	f(d, changes)
}

// ImmediateAnimator applies changes at once.
var ImmediateAnimator Animator = AnimatorFunc(func(_ time.Duration, changes func()) { changes() })

// Layout receives the space to keep clear below the message list, in points.
type Layout interface {
	SetBottomInset(points float64)
}

// KeyboardAvoider moves the bottom constraint out from under the keyboard.
// Overlapping animations are not cancelled; the last one to run wins.
type KeyboardAvoider struct {
	animator Animator
	layout   Layout
	cfg      config.LayoutConfig
	scroll   func()

	bottom float64
}

func NewKeyboardAvoider(animator Animator, layout Layout, cfg config.LayoutConfig, scroll func()) *KeyboardAvoider {
	return &KeyboardAvoider{
		animator: animator,
		layout:   layout,
		cfg:      cfg,
		scroll:   scroll,
		bottom:   cfg.DefaultBottom,
	}
}

func (k *KeyboardAvoider) Bottom() float64 {
	return k.bottom
}

func (k *KeyboardAvoider) WillShow(n Notification) {
	height := n.KeyboardFrame.Height
	k.animator.Animate(k.cfg.Animation, func() {
		k.bottom = height + k.cfg.KeyboardPadding
		k.layout.SetBottomInset(k.bottom)
	})
}

func (k *KeyboardAvoider) DidShow(Notification) {
	k.scroll()
}

func (k *KeyboardAvoider) WillHide(Notification) {
	k.animator.Animate(k.cfg.Animation, func() {
		k.bottom = k.cfg.DefaultBottom
		k.layout.SetBottomInset(k.bottom)
	})
}
