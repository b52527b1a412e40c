package stdlib

// RegisterDefaults adds all built-in functions.
func RegisterDefaults(r *Registry) {
	// Trigonometry, in degrees
	r.Register(Fn{Name: "sin", Arity: 1, Execute: stdlibSin})
	r.Register(Fn{Name: "cos", Arity: 1, Execute: stdlibCos})
	r.Register(Fn{Name: "tan", Arity: 1, Execute: stdlibTan})

	r.Register(Fn{Name: "sqrt", Arity: 1, Execute: stdlibSqrt})
}
