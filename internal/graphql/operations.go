package graphql

// Operation documents dispatched by the commerce client. The selection sets
// cover the fields the wizard and catalog screens consume.

const addProductDocument = `
mutation AddProduct($input: CreateProductInput!) {
  addProduct(input: $input) {
    id
  }
}`

const updateProductDocument = `
mutation UpdateProduct($productId: ID!, $input: CreateProductInput!) {
  updateProduct(productId: $productId, input: $input) {
    id
  }
}`

const deleteProductDocument = `
mutation DeleteProduct($productId: ID!) {
  deleteProduct(productId: $productId)
}`

const getProductDocument = `
query GetProduct($productId: ID!) {
  getProduct(productId: $productId) {
    id
    name
    description
    categoryId
    brandId
    status
    features
    Category {
      id
      name
      parent {
        id
        name
      }
    }
    variants {
      sku
      price
      stock
      isDefault
      attributes {
        comparePrice
        costPrice
        trackQuantity
        weight
        dimensions
        shippingClass
        returnPolicy
        warranty
      }
      specifications {
        key
        value
      }
    }
    images {
      id
      url
      type
      altText
      sortOrder
    }
  }
}`

const getProductCategoriesDocument = `
query GetProductCategories {
  categories {
    id
    name
    children {
      id
      name
      categorySpecification {
        id
        key
        label
        placeholder
      }
    }
    categorySpecification {
      id
      key
      label
      placeholder
    }
  }
}`
