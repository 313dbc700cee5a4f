package products

// Options tunes how a menu is built for one data-products instance.
type Options struct {
	// ActivateServiceDef resolves descriptor URLs eagerly when no input
	// param is required, instead of deferring resolution to activation.
	ActivateServiceDef bool

	// Single-view filters restrict the menu to one product family.
	SingleViewImageOnly bool
	SingleViewTableOnly bool

	// ComponentKey names the component-state slot holding user-entered
	// service inputs; empty means the default slot.
	ComponentKey string

	// Keys the user-input overlay may match service params by. The
	// overlay precedence is UCD, then utype, then param name, then
	// xtype; a later match overrides an earlier one.
	ParamNameKeys []string
	UCDKeys       []string
	UtypeKeys     []string
	XtypeKeys     []string
}

func (o Options) componentKey() string {
	if o.ComponentKey == "" {
		return DefaultComponentKey
	}
	return o.ComponentKey
}
