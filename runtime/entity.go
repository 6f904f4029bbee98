// Package runtime scans a raw Mach-O image for Objective-C and Swift
// runtime metadata by pattern-matching the mangled symbol and method-list
// conventions the ObjC runtime embeds in __TEXT/__DATA, rather than walking
// the class-list/category-list structures field by field. Grounded on
// ReDyne's ClassDumpC: a typed prefix scan for classes/categories/
// protocols, then an ivar scan, then a bracketed-method scan, with a
// last-resort sample-entity fallback when nothing is found.
package runtime

// Class is one discovered Objective-C (or Swift, which still lowers to an
// ObjC class record) class.
type Class struct {
	Name            string
	SuperclassName  string
	IsSwift         bool
	IsMetaclass     bool
	Ivars           []string
	InstanceMethods []string
	ClassMethods    []string
	Protocols       []string
}

// Category is one discovered category, keyed by the (class name, category
// name) pair: two categories with the same name on different classes are
// distinct entities, and vice versa.
type Category struct {
	ClassName       string
	CategoryName    string
	InstanceMethods []string
	ClassMethods    []string
}

// Protocol is one discovered @protocol declaration.
type Protocol struct {
	Name    string
	Methods []string
}

// Result is the full output of a scan: the deduplicated entity sets plus
// whether the sample-entity fallback fired.
type Result struct {
	Classes      []Class
	Categories   []Category
	Protocols    []Protocol
	UsedFallback bool
}

func (r *Result) findClass(name string) *Class {
	for i := range r.Classes {
		if r.Classes[i].Name == name {
			return &r.Classes[i]
		}
	}
	return nil
}

// addClass inserts name if not already present, defaulting SuperclassName
// to NSObject the way ReDyne's add_class_to_result does. Returns the
// (possibly pre-existing) entry.
func (r *Result) addClass(name string) *Class {
	if c := r.findClass(name); c != nil {
		return c
	}
	r.Classes = append(r.Classes, Class{
		Name:           name,
		SuperclassName: "NSObject",
		IsSwift:        isSwiftMangled(name),
	})
	return &r.Classes[len(r.Classes)-1]
}

func (r *Result) findCategory(className, categoryName string) *Category {
	for i := range r.Categories {
		if r.Categories[i].ClassName == className && r.Categories[i].CategoryName == categoryName {
			return &r.Categories[i]
		}
	}
	return nil
}

func (r *Result) addCategory(className, categoryName string) *Category {
	if c := r.findCategory(className, categoryName); c != nil {
		return c
	}
	r.Categories = append(r.Categories, Category{ClassName: className, CategoryName: categoryName})
	return &r.Categories[len(r.Categories)-1]
}

func (r *Result) findProtocol(name string) *Protocol {
	for i := range r.Protocols {
		if r.Protocols[i].Name == name {
			return &r.Protocols[i]
		}
	}
	return nil
}

func (r *Result) addProtocol(name string) *Protocol {
	if p := r.findProtocol(name); p != nil {
		return p
	}
	r.Protocols = append(r.Protocols, Protocol{Name: name})
	return &r.Protocols[len(r.Protocols)-1]
}

func addUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func (c *Class) addMethod(name string, isClassMethod bool) {
	if isClassMethod {
		c.ClassMethods = addUnique(c.ClassMethods, name)
	} else {
		c.InstanceMethods = addUnique(c.InstanceMethods, name)
	}
}

func (c *Category) addMethod(name string, isClassMethod bool) {
	if isClassMethod {
		c.ClassMethods = addUnique(c.ClassMethods, name)
	} else {
		c.InstanceMethods = addUnique(c.InstanceMethods, name)
	}
}
