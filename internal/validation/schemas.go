package validation

var (
	AuthorCreate = Schema{
		Name: "author.create",
		Fields: []Field{
			{Name: "name", Kind: String, Required: true, Tag: "min=2,max=50"},
			{Name: "birthYear", Kind: Integer, Required: true, Tag: "min=1000,max=2100"},
		},
	}

	AuthorUpdate = Schema{
		Name: "author.update",
		Fields: []Field{
			{Name: "name", Kind: String, Tag: "min=2,max=50"},
			{Name: "birthYear", Kind: Integer, Tag: "min=1000,max=2100"},
		},
	}

	BookCreate = Schema{
		Name: "book.create",
		Fields: []Field{
			{Name: "title", Kind: String, Required: true, Tag: "min=1,max=200"},
			{Name: "year", Kind: Integer, Required: true, Tag: "min=-3000,max=2100"},
			{Name: "authorId", Kind: ObjectID, Required: true, Tag: "objectid"},
		},
	}

	// authorId is accepted here so clients may echo it back, but book
	// updates never apply it.
	BookUpdate = Schema{
		Name: "book.update",
		Fields: []Field{
			{Name: "title", Kind: String, Tag: "min=1,max=200"},
			{Name: "year", Kind: Integer, Tag: "min=-3000,max=2100"},
			{Name: "authorId", Kind: ObjectID, Tag: "objectid"},
		},
	}

	Register = Schema{
		Name: "auth.register",
		Fields: []Field{
			{Name: "email", Kind: String, Required: true, Tag: "email,max=254"},
			{Name: "password", Kind: String, Required: true, Tag: "min=6,max=72"},
		},
	}

	Login = Schema{
		Name: "auth.login",
		Fields: []Field{
			{Name: "email", Kind: String, Required: true},
			{Name: "password", Kind: String, Required: true},
		},
	}
)
