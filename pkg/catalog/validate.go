package catalog

// Validate runs every field rule against p and collects all failures keyed by
// dotted path. In ModeUpdate only the fields present in the input are checked.
// Slug uniqueness needs storage and is left to the caller.
func Validate(p Product, mode Mode) FieldErrors {
	errs := FieldErrors{}
	check := func(path string) bool {
		return mode != ModeUpdate || p.Has(path)
	}

	if check("title") {
		errs.add("title", ValidateTitle(p.Title))
	}
	if check("slug") {
		errs.add("slug", ValidateSlug(p.Slug))
	}
	if check("brand") {
		errs.add("brand", ValidateBrand(p.Brand))
	}
	if check("descriptionHtml") {
		errs.add("descriptionHtml", ValidateDescription(p.DescriptionHTML))
	}
	if check("highlights") {
		errs.add("highlights", ValidateHighlights(p.Highlights))
	}
	if check("specs") {
		errs.add("specs", ValidateSpecs(p.Specs))
	}
	if check("media") {
		errs.add("media", ValidateMedia(p.Media))
	}
	if check("videoUrls") {
		errs.add("videoUrls", ValidateVideoURLs(p.VideoURLs))
	}

	validatePrice(errs, p, mode)

	if check("inventory.qty") || check("inventory.track") {
		errs.add("inventory.qty", ValidateStockQty(p.Inventory))
	}
	if check("inventory.lowStockThreshold") {
		errs.add("inventory.lowStockThreshold", ValidateLowStockThreshold(p.Inventory.LowStockThreshold))
	}
	if check("quantityDiscounts") {
		errs.add("quantityDiscounts", ValidateDiscounts(p.QuantityDiscounts))
	}
	if check("shipping") {
		for leaf, v := range ValidateShipping(p.Shipping) {
			errs.add("shipping."+leaf, v)
		}
	}
	if check("seo") {
		for leaf, v := range ValidateSEO(p.SEO) {
			errs.add("seo."+leaf, v)
		}
	}
	if check("tags") {
		errs.add("tags", ValidateTags(p.Tags))
	}
	return errs
}

// validatePrice requires mrp on create. On update a missing mrp is skipped and
// the sale ordering check runs only when both prices are known.
func validatePrice(errs FieldErrors, p Product, mode Mode) {
	if mode == ModeUpdate {
		if !p.Has("price") {
			return
		}
		if p.Price.MRP != nil {
			errs.add("price.mrp", ValidateMRP(p.Price.MRP))
		}
	} else {
		errs.add("price.mrp", ValidateMRP(p.Price.MRP))
	}
	errs.add("price.sale", ValidateSalePrice(p.Price.Sale, p.Price.MRP))
	errs.add("price.currency", ValidateCurrency(p.Price.Currency))
}
