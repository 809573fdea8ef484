// internal/extract/tables.go
package extract

// The engine is one interpreter over the locator tables below. The site ships
// several overlapping DOM generations at once, so every field carries a chain
// ordered from the current markup down to legacy fallbacks. Changing what gets
// extracted should only ever mean editing this file.

var nameChain = Chain{
	CSS("h1.text-heading-xlarge"),
	CSS("h1.top-card-layout__title"),
	CSS("h1.inline.t-24.t-black.t-normal"),
	CSS(".pv-top-card-section__name"),
	CSS(".pv-text-details__left-panel h1"),
	XPath("//div[contains(@class,'profile-top-card')]//h1"),
	XPath("//main//h1"),
}

// nameFallback scans every top-level heading inside the main content region
// when no priority locator matched.
var nameFallback = XPath("//main//h1")

var headlineChain = Chain{
	CSS("div.text-body-medium.break-words"),
	CSS(".pv-text-details__left-panel .text-body-medium"),
	CSS("div.text-body-medium"),
	CSS(".pv-top-card-section__headline"),
	CSS(".top-card-layout__headline"),
}

var locationChain = Chain{
	CSS("span.text-body-small.inline.t-black--light.break-words"),
	CSS(".pv-text-details__left-panel span.text-body-small"),
	CSS(".pv-top-card-section__location"),
	CSS(".top-card-layout__location"),
}

// Section anchors are structural by necessity: they match on header text, and
// per-item locators are rebased under whichever anchor hit.
var aboutSections = []string{
	"//section[.//div[contains(text(),'About')]]",
	"//section[.//span[contains(text(),'About')]]",
	"//section[contains(@class,'pv-about-section')]",
}

// aboutBodies are searched inside the matched about section, expandable
// "show more" block first.
var aboutBodies = []string{
	"//div[contains(@class,'inline-show-more-text')]",
	"//div[contains(@class,'display-flex')]//span[@aria-hidden='true']",
	"//p",
}

// aboutFlat is the last resort when no section anchor matches at all.
var aboutFlat = Chain{
	CSS(".pv-about__summary-text"),
	CSS(".pv-about-section div.pv-shared-text-with-see-more"),
}

var experienceSections = []string{
	"//section[.//div[contains(text(),'Experience')]]",
	"//section[.//span[contains(text(),'Experience')]]",
	"//section[contains(@id,'experience-section')]",
	"//section[contains(@class,'experience-section')]",
}

var expTitleRel = []string{
	"//span[contains(@class,'mr1') and contains(@class,'t-bold')]",
	"//h3",
	"//div[contains(@class,'t-bold')]/span[@aria-hidden='true']",
}

var expCompanyRel = []string{
	"//span[contains(@class,'t-14') and contains(@class,'t-normal')]/span[@aria-hidden='true']",
	"//p[contains(@class,'hoverable-link-text')]",
	"//span[contains(@class,'hoverable-link-text')]",
	"//h4",
}

var expDatesRel = []string{
	"//span[contains(@class,'date-range')]",
	"//div[contains(@class,'date-range')]",
	"//span[contains(@class,'t-black--light')]/span[@aria-hidden='true']",
}

var educationSections = []string{
	"//section[.//div[contains(text(),'Education')]]",
	"//section[.//span[contains(text(),'Education')]]",
	"//section[contains(@id,'education-section')]",
	"//section[contains(@class,'pv-education-section')]",
}

var eduSchoolRel = []string{
	"//span[contains(@class,'hoverable-link-text')]",
	"//h3[contains(@class,'pv-entity__school-name')]",
	"//div[contains(@class,'t-bold')]/span[@aria-hidden='true']",
	"//span[contains(@class,'t-bold')]",
}

var eduDegreeRel = []string{
	"//span[contains(@class,'t-14') and contains(@class,'t-normal')]/span[@aria-hidden='true']",
	"//p[contains(@class,'pv-entity__secondary-title')]",
	"//span[contains(@class,'pv-entity__comma-item')]",
}

var eduDatesRel = []string{
	"//span[contains(@class,'date-range')]",
	"//div[contains(@class,'date-range')]",
	"//span[contains(@class,'t-black--light')]/span[@aria-hidden='true']",
}

var skillsSections = []string{
	"//section[.//div[contains(text(),'Skills')]]",
	"//section[.//span[contains(text(),'Skills')]]",
	"//section[contains(@class,'skills-section')]",
	"//div[contains(@class,'pv-skill-categories-section')]",
}

var skillItemsRel = []string{
	"//span[contains(@class,'pv-skill-category-entity__name-text')]",
	"//span[contains(@class,'pvs-entity__primary-text')]",
	"//div[contains(@class,'t-bold')]/span[@aria-hidden='true']",
	"//li//span[contains(@class,'text-body-small')]",
}

// skillsPageItems are tried on the dedicated skills sub-page.
var skillsPageItems = Chain{
	XPath("//div[contains(@class,'t-bold')]/span[@aria-hidden='true']"),
	CSS(".pv-skill-category-entity__name-text"),
	CSS("span.visually-hidden"),
}

// showMoreButtons covers the expansion controls scattered across sections.
var showMoreButtons = []string{
	"//button[contains(.,'Show all')]",
	"//button[contains(.,'Show more')]",
	"//button[contains(.,'See more')]",
	"//button[contains(@aria-label,'Expand')]",
}

// sectionItems enumerates entry rows under a matched section anchor.
const sectionItems = "//li"
