/*
Package codec converts between typed entity variants and their stored
raw-document form.

Hydration reads the EntityType discriminator attribute off a stored
document: present, it selects the registered subtype constructor; absent,
the supertype constructor. One collection can therefore physically hold a
supertype and several subtypes while callers get the exact original
variant back at read time.

Dehydration is the inverse: the entity is marshalled to an attribute map
and, when it is a subtype, the discriminator attribute is stamped before
the document is handed to the storage layer.
*/
package codec
